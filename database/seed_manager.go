package database

import (
	"fmt"
	"os"
	"strings"

	"github.com/yeremiapane/campus-canteen/models"
	"github.com/yeremiapane/campus-canteen/utils"
	"gorm.io/gorm"
)

// SeedMenu runs the SQL statements in path when the menu table is empty.
func SeedMenu(db *gorm.DB, path string) error {
	var count int64
	if err := db.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count menu items: %w", err)
	}
	if count > 0 {
		utils.InfoLogger.Printf("Menu already has %d items, skipping seed", count)
		return nil
	}

	seedSQL, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	executed := 0
	for _, stmt := range splitStatements(string(seedSQL)) {
		if err := db.Exec(stmt).Error; err != nil {
			utils.ErrorLogger.Printf("Error executing seed: %v\nStatement: %s", err, stmt)
			continue
		}
		executed++
	}
	utils.InfoLogger.Printf("Seeded menu with %d statements from %s", executed, path)
	return nil
}

// splitStatements splits on ";" and drops blank statements and "--" comment lines.
func splitStatements(sql string) []string {
	var stmts []string
	for _, raw := range strings.Split(sql, ";") {
		var lines []string
		for _, line := range strings.Split(raw, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

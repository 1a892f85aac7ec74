package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chewing-love-service/internal/domain/models"
	"chewing-love-service/pkg/logger"
)

// 迁移模式
const (
	MigrationAuto  = "auto"  // 只添加新列和新表
	MigrationAlter = "alter" // 额外删除模型中已不存在的列
	MigrationDrop  = "drop"  // 删除并重建所有表
)

// Migrate 按模式迁移全部模型
func Migrate(db *gorm.DB, mode string) error {
	switch mode {
	case "", MigrationAuto:
		logger.Info("在标准模式下运行，将只添加新列和新表")
		return autoMigrate(db)
	case MigrationAlter:
		logger.Info("在alter模式下运行，将修改表结构以匹配模型")
		return advancedMigrate(db)
	case MigrationDrop:
		logger.Warning("在drop模式下运行，将删除并重建所有表")
		return dropAndRecreateTables(db)
	default:
		return fmt.Errorf("unknown migration mode %q", mode)
	}
}

// autoMigrate 自动迁移所有模型（只添加新列和新表）
func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return err
	}
	logger.Info("数据库迁移完成")
	return nil
}

// advancedMigrate 先删除模型里已移除的列，再执行自动迁移
func advancedMigrate(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, model := range models.AllModels() {
		if !migrator.HasTable(model) {
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parse model: %w", err)
		}
		modelColumns := make(map[string]bool, len(stmt.Schema.DBNames))
		for _, name := range stmt.Schema.DBNames {
			modelColumns[name] = true
		}

		columnTypes, err := migrator.ColumnTypes(model)
		if err != nil {
			return fmt.Errorf("read columns of %s: %w", stmt.Schema.Table, err)
		}
		for _, column := range columnTypes {
			if modelColumns[column.Name()] {
				continue
			}
			logger.Warning("在%s表中发现多余列: %s，准备删除", stmt.Schema.Table, column.Name())
			// Migrator.DropColumn 只认识模型里的字段，多余列需直接删除
			if err := db.Exec("ALTER TABLE ? DROP COLUMN ?",
				clause.Table{Name: stmt.Schema.Table}, clause.Column{Name: column.Name()}).Error; err != nil {
				return fmt.Errorf("drop column %s.%s: %w", stmt.Schema.Table, column.Name(), err)
			}
		}
	}

	// 自动迁移其他表
	return autoMigrate(db)
}

// dropAndRecreateTables 删除并重建所有表
func dropAndRecreateTables(db *gorm.DB) error {
	all := models.AllModels()
	// 先删除依赖其他表的记录表
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			logger.Error("删除表失败: %v", err)
		}
	}

	// 重新创建表
	return autoMigrate(db)
}

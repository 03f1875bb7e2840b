package inits

import (
	"fmt"
	"xmpp-homepage/app/server/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func DB(conn string) (db *gorm.DB, err error) {
	// 打开连接
	if db, err = gorm.Open(postgres.Open(conn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 迁移
	if err = Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 初始化启动数据
	if err = initData(db); err != nil {
		return nil, fmt.Errorf("failed to init data into database: %w", err)
	}

	// 返回
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Confirmation{},
		&models.GpgKey{},
		&models.UserLogEntry{},
		&models.Certificate{},
		&models.Translation{},
		&models.Page{},
		&models.BlogPost{},
		&models.MenuItem{},
		&models.CachedMessage{},
	)
}

func initData(db *gorm.DB) (err error) {
	// 查询现有记录数量
	var counter int64

	// 初始化菜单
	if err = db.Model(&models.MenuItem{}).Count(&counter).Error; err != nil {
		return fmt.Errorf("failed to get menu item count: %w", err)
	} else if counter == 0 { // 没有任何菜单项，添加默认菜单
		if err = db.Create([]*models.MenuItem{
			{
				Order:  0,
				Target: "/",
				Titles: map[string]string{"en": "News", "de": "Neuigkeiten"},
			},
			{
				Order:  10,
				Target: "/account/register/",
				Titles: map[string]string{"en": "Register", "de": "Registrieren"},
			},
			{
				Order:  20,
				Target: "/certs/",
				Titles: map[string]string{"en": "Certificates", "de": "Zertifikate"},
			},
			{
				Order:  30,
				Target: "/contact/",
				Titles: map[string]string{"en": "Contact", "de": "Kontakt"},
			},
		}).Error; err != nil {
			return fmt.Errorf("failed to create initial menu items: %w", err)
		}
	}

	// 已有数据或全部导入成功
	return nil
}

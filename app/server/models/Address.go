package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Address struct {
	gorm.Model

	Address string `gorm:"column:address;uniqueIndex"` // 客户端 IP 地址
}

// GetOrCreateAddress 返回对应地址的记录，不存在时创建
func GetOrCreateAddress(db *gorm.DB, addr string) (*Address, error) {
	var address Address
	if err := db.Where("address = ?", addr).First(&address).Error; err == nil {
		return &address, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	address.Address = addr
	if err := db.Create(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发请求已经创建
			if err := db.Where("address = ?", addr).First(&address).Error; err != nil {
				return nil, fmt.Errorf("failed to get address: %w", err)
			}
			return &address, nil
		}
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return &address, nil
}

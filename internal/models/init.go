package models

import (
	"github.com/storefront-next/internal/logger"
)

// DemoUsers 演示账号（密码由认证服务内置校验，不落库）
func DemoUsers() []User {
	return []User{
		{ID: "1", Name: "Demo User", Email: "user@example.com", Phone: "9876543210", Address: "221B Baker Street, Mumbai"},
		{ID: "2", Name: "Store Admin", Email: "admin@example.com", Phone: "9123456780", Address: "12 MG Road, Bengaluru"},
	}
}

// DemoProducts 演示商品
func DemoProducts() []Product {
	original := func(v int64) *Money {
		m := NewMoney(v)
		return &m
	}
	return []Product{
		{ID: "1", Name: "Wireless Headphones", Image: "https://picsum.photos/seed/headphones/400", Category: "electronics", Price: NewMoney(2499), OriginalPrice: original(3999), Discount: NewMoney(10), Stock: 25, Description: "Over-ear bluetooth headphones with 30 hour battery life."},
		{ID: "2", Name: "Smart Watch", Image: "https://picsum.photos/seed/watch/400", Category: "electronics", Price: NewMoney(5000), OriginalPrice: original(6500), Discount: NewMoney(10), Stock: 12, Description: "Fitness tracking smart watch with heart rate monitor."},
		{ID: "3", Name: "Cotton T-Shirt", Image: "https://picsum.photos/seed/tshirt/400", Category: "fashion", Price: NewMoney(1000), Discount: NewMoney(0), Stock: 100, Description: "Plain crew neck cotton t-shirt."},
		{ID: "4", Name: "Running Shoes", Image: "https://picsum.photos/seed/shoes/400", Category: "fashion", Price: NewMoney(3499), OriginalPrice: original(4999), Discount: NewMoney(15), Stock: 40, Description: "Lightweight running shoes with cushioned sole."},
		{ID: "5", Name: "Laptop Backpack", Image: "https://picsum.photos/seed/backpack/400", Category: "accessories", Price: NewMoney(1799), Discount: NewMoney(5), Stock: 3, Description: "Water resistant backpack for 15 inch laptops."},
		{ID: "6", Name: "4K Television", Image: "https://picsum.photos/seed/tv/400", Category: "electronics", Price: NewMoney(32999), OriginalPrice: original(39999), Discount: NewMoney(8), Stock: 5, Description: "55 inch 4K UHD smart television."},
		{ID: "7", Name: "Ceramic Coffee Mug", Image: "https://picsum.photos/seed/mug/400", Category: "home", Price: NewMoney(349), Discount: NewMoney(0), Stock: 0, Description: "350ml ceramic mug, dishwasher safe."},
	}
}

// SeedDemoData 初始化演示用户与商品（已有数据时跳过）
func SeedDemoData() error {
	var count int64
	if err := DB.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		users := DemoUsers()
		if err := DB.Create(&users).Error; err != nil {
			return err
		}
		logger.Infow("seed_users_created", "count", len(users))
	}

	if err := DB.Model(&Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		products := DemoProducts()
		if err := DB.Create(&products).Error; err != nil {
			return err
		}
		logger.Infow("seed_products_created", "count", len(products))
	}
	return nil
}

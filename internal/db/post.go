package db

import "gorm.io/gorm"

// Post 定义了文章模型。Content 保存清洗后的 HTML。
type Post struct {
	gorm.Model
	Title   string `gorm:"size:255;not null"`
	Content string `gorm:"type:text;not null"`
	Summary string `gorm:"size:512"`
	UserID  uint   `gorm:"index;not null"`
	User    User
}

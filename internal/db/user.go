package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 定义了用户模型，文章、评论与点赞都以它作为作者。
type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
}

// EnsureUser 若用户名不存在则以 bcrypt 哈希密码创建账号，并返回该用户。
func EnsureUser(gdb *gorm.DB, username, password string) (*User, error) {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil, errors.New("username and password are required")
	}

	if gdb == nil {
		return nil, errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		user := User{Username: trimmedUser, Password: string(hashed)}
		if err := gdb.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	return &existing, nil
}

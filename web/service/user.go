package service

import (
	"strings"

	"github.com/miniblog/miniblog/database"
	"github.com/miniblog/miniblog/database/model"
	"github.com/miniblog/miniblog/logger"
	"github.com/miniblog/miniblog/util/common"
	"github.com/miniblog/miniblog/util/crypto"
)

type UserService struct{}

// Register hashes the password and inserts a new user.
func (s *UserService) Register(username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, common.ValidationError("errors.user.required", "name, email and password are required")
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, common.ValidationError("errors.user.passwordTooLong", "password is too long")
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	db := database.GetDB()
	if err := db.Create(user).Error; err != nil {
		logger.Warning("insert user err:", err)
		return nil, common.StoreError("errors.user.insert", "new user insert error "+username, err, "Name=="+username)
	}
	return user, nil
}

// CheckUser returns the first user registered with email whose password
// matches. An unknown email and a wrong password fail the same way.
func (s *UserService) CheckUser(email string, password string) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("email = ?", strings.TrimSpace(email)).
		Order("id ASC").
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, common.AuthError("pages.login.wrongEmailOrPassword", "wrong email or password")
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, common.AuthError("pages.login.wrongEmailOrPassword", "wrong email or password")
	}

	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil, common.AuthError("pages.login.wrongEmailOrPassword", "wrong email or password")
	}
	return user, nil
}

func (s *UserService) GetUsers() ([]*model.User, error) {
	db := database.GetDB()
	var users []*model.User
	err := db.Model(model.User{}).Order("id ASC").Find(&users).Error
	return users, err
}

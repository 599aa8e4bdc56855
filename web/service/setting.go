package service

import (
	"strconv"

	"github.com/miniblog/miniblog/database"
	"github.com/miniblog/miniblog/database/model"
	"github.com/miniblog/miniblog/logger"
	"github.com/miniblog/miniblog/util/common"
	"github.com/miniblog/miniblog/util/random"
)

var defaultValueMap = map[string]string{
	"secret":        random.Seq(32),
	"sessionMaxAge": "0",
}

// SettingService reads and writes the key/value settings table.
type SettingService struct{}

// ResetSettings drops every stored setting. A new session secret is generated
// on next start, which logs everybody out.
func (s *SettingService) ResetSettings() error {
	db := database.GetDB()
	return db.Where("1 = 1").Delete(model.Setting{}).Error
}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	db := database.GetDB()
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Key = key
	setting.Value = value
	return db.Save(setting).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", common.NewErrorf("key <%v> not in defaultValueMap", key)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) getInt(key string) (int, error) {
	str, err := s.getString(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) setInt(key string, value int) error {
	return s.saveSetting(key, strconv.Itoa(value))
}

// GetSessionMaxAge returns the session lifetime in minutes. Zero keeps the
// cookie until the browser closes.
func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt("sessionMaxAge")
}

func (s *SettingService) SetSessionMaxAge(minutes int) error {
	if minutes < 0 {
		return common.ValidationError("errors.setting.maxAge", "session max age can not be negative")
	}
	return s.setInt("sessionMaxAge", minutes)
}

// GetSecret returns the session signing key, persisting the generated default
// on first use so cookies stay valid across restarts.
func (s *SettingService) GetSecret() ([]byte, error) {
	secret, err := s.getString("secret")
	if secret == defaultValueMap["secret"] {
		err := s.saveSetting("secret", secret)
		if err != nil {
			logger.Warning("save secret failed:", err)
		}
	}
	return []byte(secret), err
}

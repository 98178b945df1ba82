package config

import (
	"errors"
	"os"

	"github.com/spf13/viper"
)

// viper keys and their config file counterparts.
const (
	keyFocusMinutes    = "focus_mins"
	keyNotify          = "notify"
	keyCompletionSound = "completion_sound"
	keySessionCmd      = "session_cmd"
	keyTwentyFourHour  = "24hr_clock"
	keyDarkTheme       = "dark_theme"
)

// loadViperConfig reads the config file into c, writing a default config
// file first if none exists.
func loadViperConfig(c *Config) error {
	v := viper.New()

	v.SetConfigFile(c.PathToConfig)
	v.SetConfigType("yaml")

	v.SetDefault(keyFocusMinutes, defaultFocusMinutes)
	v.SetDefault(keyNotify, true)
	v.SetDefault(keyCompletionSound, "")
	v.SetDefault(keySessionCmd, "")
	v.SetDefault(keyTwentyFourHour, false)
	v.SetDefault(keyDarkTheme, true)

	err := v.ReadInConfig()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err = v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}
	}

	c.FocusMinutes = v.GetInt(keyFocusMinutes)
	c.Notify = v.GetBool(keyNotify)
	c.CompletionSound = v.GetString(keyCompletionSound)
	c.SessionCmd = v.GetString(keySessionCmd)
	c.TwentyFourHour = v.GetBool(keyTwentyFourHour)
	c.DarkTheme = v.GetBool(keyDarkTheme)

	if c.FocusMinutes < MinFocusMinutes || c.FocusMinutes > MaxFocusMinutes {
		return errInvalidDuration.Fmt(
			c.FocusMinutes,
			MinFocusMinutes,
			MaxFocusMinutes,
		)
	}

	return nil
}

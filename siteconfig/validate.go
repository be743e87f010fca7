package siteconfig

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/narsaynorath/ramblings/plugin"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	githubHandlePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)
)

// validatorInstance configures and returns the shared validator.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("site_url", func(fl validator.FieldLevel) bool {
			u, err := url.Parse(fl.Field().String())
			if err != nil || u.Host == "" {
				return false
			}
			scheme := strings.ToLower(u.Scheme)
			return scheme == "http" || scheme == "https"
		})

		_ = v.RegisterValidation("github_handle", func(fl validator.FieldLevel) bool {
			return githubHandlePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})
	return validateInst
}

// Validate checks metadata and every plugin activation, including the options
// of transformer-remark sub-plugins.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidConfig)
	}
	if err := validatorInstance().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}
	for i, a := range cfg.Plugins {
		if err := validateActivation(a, false); err != nil {
			return fmt.Errorf("%w: plugins[%d] %s: %w", ErrInvalidConfig, i, a.Resolve, err)
		}
	}
	return nil
}

func validateActivation(a plugin.Activation, insideRemark bool) error {
	if !a.Kind.Known() {
		return plugin.ErrUnknownPlugin
	}
	if a.Kind.RemarkOnly() != insideRemark {
		if insideRemark {
			return errors.New("not a transformer-remark plugin")
		}
		return errors.New("only valid inside transformer-remark plugins")
	}
	opts := plugin.Options(a.Kind)
	if opts == nil {
		return nil
	}
	if err := a.Decode(opts); err != nil {
		return err
	}
	if err := validatorInstance().Struct(opts); err != nil {
		return errors.New(describe(err))
	}
	if remark, ok := opts.(*plugin.RemarkOptions); ok {
		for j, sub := range remark.Plugins {
			if err := validateActivation(sub, true); err != nil {
				return fmt.Errorf("plugins[%d] %s: %w", j, sub.Resolve, err)
			}
		}
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

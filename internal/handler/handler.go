package handlers

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"socialhub/internal/config"
	"socialhub/internal/service"
)

type Handlers struct {
	AuthService       service.AuthService
	UserService       service.UserService
	PostService       service.PostService
	EngagementService service.EngagementService
	HealthService     service.HealthService
	Cfg               *config.Config
	Validate          *validator.Validate
	Logger            *zap.Logger
}

func NewHandlers(service *service.Service, config *config.Config, logger *zap.Logger) *Handlers {
	return &Handlers{
		AuthService:       service.Auth,
		UserService:       service.User,
		PostService:       service.Post,
		EngagementService: service.Engagement,
		HealthService:     service.Health,
		Cfg:               config,
		Validate:          NewValidator(),
		Logger:            logger,
	}
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// NewValidator returns a validator that reports fields by their form names
// and knows the "username" rule.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return v
}

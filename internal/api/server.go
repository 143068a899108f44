package api

import (
	"github.com/yonaimineakio/speakcoach/internal/db"
	"github.com/yonaimineakio/speakcoach/internal/services"
)

type Server struct {
	DB                 *db.DB
	UserService        services.UserService
	ScenarioService    services.ScenarioService
	SessionService     services.SessionService
	ReviewService      services.ReviewService
	SavedPhraseService services.SavedPhraseService
}

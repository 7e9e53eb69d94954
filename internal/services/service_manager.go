package services

import (
	"log/slog"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/cache"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/config"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/events"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/validator"
)

// ServiceManager gives handlers access to every service
type ServiceManager interface {
	Scoring() ScoringService
	Test() TestService
	Result() ResultService
	Export() ExportService
}

// ServiceDeps holds the infrastructure shared by the services. Questions
// and Publisher may be nil.
type ServiceDeps struct {
	Repo      repositories.Repository
	Questions *cache.QuestionCache
	Publisher events.EventPublisher
	Scoring   config.ScoringConfig
	Validator *validator.Validator
	Logger    *slog.Logger
}

type serviceManager struct {
	scoring ScoringService
	test    TestService
	result  ResultService
	export  ExportService
}

func NewServiceManager(deps ServiceDeps) ServiceManager {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	tests := NewTestService(deps.Repo, deps.Questions, deps.Validator, deps.Logger)
	return &serviceManager{
		scoring: NewScoringService(deps.Scoring, deps.Validator, deps.Logger),
		test:    tests,
		result:  NewResultService(deps.Repo, tests, deps.Publisher, deps.Scoring, deps.Validator, deps.Logger),
		export:  NewExportService(deps.Repo, deps.Logger),
	}
}

func (m *serviceManager) Scoring() ScoringService { return m.scoring }
func (m *serviceManager) Test() TestService       { return m.test }
func (m *serviceManager) Result() ResultService   { return m.result }
func (m *serviceManager) Export() ExportService   { return m.export }

package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/phishguard/awareness-service/internal/repositories"
)

// Repository wires the per-entity Postgres repositories to one *gorm.DB.
type Repository struct {
	quiz     repositories.QuizRepository
	attempt  repositories.AttemptRepository
	profile  repositories.ProfileRepository
	template repositories.TemplateRepository
	campaign repositories.CampaignRepository
	event    repositories.EventRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		quiz:     NewQuizPostgreSQL(db),
		attempt:  NewAttemptPostgreSQL(db),
		profile:  NewProfilePostgreSQL(db),
		template: NewTemplatePostgreSQL(db),
		campaign: NewCampaignPostgreSQL(db),
		event:    NewEventPostgreSQL(db),
	}
}

func (r *Repository) Quiz() repositories.QuizRepository         { return r.quiz }
func (r *Repository) Attempt() repositories.AttemptRepository   { return r.attempt }
func (r *Repository) Profile() repositories.ProfileRepository   { return r.profile }
func (r *Repository) Template() repositories.TemplateRepository { return r.template }
func (r *Repository) Campaign() repositories.CampaignRepository { return r.campaign }
func (r *Repository) Event() repositories.EventRepository       { return r.event }

// applyPaginationAndSort applies shared paging and ordering rules:
// whitelisted sort columns, desc default, capped page size.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int, allowed ...string) *gorm.DB {
	column := "created_at"
	for _, a := range allowed {
		if sortBy == a {
			column = sortBy
			break
		}
	}

	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", column, order))

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return query.Limit(limit).Offset(offset)
}

package validation

import (
	"github.com/kmoran/personal-library/models"
)

type AuthorCreate struct {
	Name        string       `json:"name" validate:"required,max=100"`
	Biography   string       `json:"biography" validate:"omitempty,max=2000"`
	BirthDate   *models.Date `json:"birthDate"`
	DeathDate   *models.Date `json:"deathDate"`
	Nationality string       `json:"nationality"`
	Website     string       `json:"website" validate:"omitempty,url"`
	Genres      []string     `json:"genres"`
	Notes       string       `json:"notes" validate:"omitempty,max=1000"`
}

type AuthorUpdate struct {
	Name        *string      `json:"name" validate:"omitempty,min=1,max=100"`
	Biography   *string      `json:"biography" validate:"omitempty,max=2000"`
	BirthDate   *models.Date `json:"birthDate"`
	DeathDate   *models.Date `json:"deathDate"`
	Nationality *string      `json:"nationality"`
	Website     *string      `json:"website" validate:"omitempty,url"`
	Genres      []string     `json:"genres"`
	Notes       *string      `json:"notes" validate:"omitempty,max=1000"`
}

func ValidateAuthorCreate(in *AuthorCreate) []string {
	msgs := check(in)
	msgs = append(msgs, checkLifeDates(in.BirthDate, in.DeathDate)...)
	return msgs
}

func ValidateAuthorUpdate(in *AuthorUpdate) []string {
	msgs := check(in)
	msgs = append(msgs, checkLifeDates(in.BirthDate, in.DeathDate)...)
	return msgs
}

func checkLifeDates(birth, death *models.Date) []string {
	if birth == nil || death == nil {
		return nil
	}
	if death.Time.Before(birth.Time) {
		return []string{"deathDate cannot be before birthDate"}
	}
	return nil
}

package service

import (
	"strings"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository"
)

func normalizePage(p repository.Page) repository.Page {
	limit := p.Limit
	offset := p.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

func isValidCategory(cat string) bool {
	switch model.TeamCategory(strings.ToLower(strings.TrimSpace(cat))) {
	case model.CategoryMens, model.CategoryWomens, model.CategoryMixed:
		return true
	default:
		return false
	}
}

func isValidProfile(p string) bool {
	switch model.Profile(strings.ToLower(strings.TrimSpace(p))) {
	case model.ProfileScorekeeper, model.ProfileCoach:
		return true
	default:
		return false
	}
}

// parseEventType admits only the directly registrable play kinds. Points,
// assists and pools have dedicated operations.
func parseEventType(t string) (model.EventType, bool) {
	switch model.EventType(strings.ToLower(strings.TrimSpace(t))) {
	case model.EventBlock:
		return model.EventBlock, true
	case model.EventDrop:
		return model.EventDrop, true
	case model.EventTurnover:
		return model.EventTurnover, true
	default:
		return "", false
	}
}

func parseSubType(s string) (model.SubType, bool) {
	switch model.SubType(strings.ToLower(strings.TrimSpace(s))) {
	case model.SubTypeNone:
		return model.SubTypeNone, true
	case model.SubTypeDrop:
		return model.SubTypeDrop, true
	case model.SubTypeThrowAway:
		return model.SubTypeThrowAway, true
	default:
		return "", false
	}
}

func parsePoolResult(r string) (model.PoolResult, bool) {
	switch model.PoolResult(strings.ToLower(strings.TrimSpace(r))) {
	case model.PoolIn:
		return model.PoolIn, true
	case model.PoolOut:
		return model.PoolOut, true
	default:
		return "", false
	}
}

func parseGender(g string) (model.Gender, bool) {
	switch model.Gender(strings.ToLower(strings.TrimSpace(g))) {
	case model.GenderMale:
		return model.GenderMale, true
	case model.GenderFemale:
		return model.GenderFemale, true
	default:
		return "", false
	}
}

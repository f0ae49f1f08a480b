package catalog

import (
	"strings"

	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

type searchResponse struct {
	Object   string    `json:"object"`
	HasMore  bool      `json:"has_more"`
	NextPage string    `json:"next_page"`
	Data     []apiCard `json:"data"`
}

type apiCard struct {
	CollectorNumber string            `json:"collector_number"`
	Set             string            `json:"set"`
	Name            string            `json:"name"`
	CMC             float64           `json:"cmc"`
	ColorIdentity   []string          `json:"color_identity"`
	Legalities      map[string]string `json:"legalities"`
	OracleText      *string           `json:"oracle_text"`
	ManaCost        *string           `json:"mana_cost"`
	CardFaces       []cardFace        `json:"card_faces"`
}

type cardFace struct {
	OracleText string `json:"oracle_text"`
	ManaCost   string `json:"mana_cost"`
}

const faceSeparator = " // "

// toCard converts an API card. Cards with two faces and no top level text
// join their faces' text and mana cost.
func (c apiCard) toCard() storage.Card {
	card := storage.Card{
		SetNumber:        c.CollectorNumber,
		SetCode:          c.Set,
		Name:             c.Name,
		CMC:              int(c.CMC),
		Color:            strings.Join(c.ColorIdentity, ""),
		StandardLegality: c.Legalities["standard"],
	}

	if c.OracleText != nil {
		card.OracleText = *c.OracleText
	} else {
		texts := make([]string, 0, len(c.CardFaces))
		for _, f := range c.CardFaces {
			texts = append(texts, f.OracleText)
		}
		card.OracleText = strings.Join(texts, faceSeparator)
	}

	if c.ManaCost != nil {
		card.ManaCost = *c.ManaCost
	} else {
		costs := make([]string, 0, len(c.CardFaces))
		for _, f := range c.CardFaces {
			costs = append(costs, f.ManaCost)
		}
		card.ManaCost = strings.Join(costs, faceSeparator)
		if card.ManaCost == faceSeparator {
			card.ManaCost = ""
		}
	}
	return card
}

// Package planner decides the next dialogue move: ask a clarifying question,
// present matching products, or report that nothing matched.
package planner

import (
	"smartshopper/internal/assistant/intent"
	"smartshopper/internal/catalog"
	"smartshopper/internal/models"
)

// Kind tags a planner decision. Exactly one variant is active per turn.
type Kind string

const (
	KindAskQuestion    Kind = "ask_question"
	KindPresentResults Kind = "present_results"
	KindNoMatch        Kind = "no_match"
)

// Decision is the tagged outcome of planning. Question is set for
// KindAskQuestion and optionally for KindNoMatch (the next natural question
// to append to the no-match message); Products is set for KindPresentResults.
type Decision struct {
	Kind     Kind
	Question string
	Products []models.Product
}

// Questions holds the clarifying question texts, one per askable field.
type Questions struct {
	Category string
	Color    string
	Size     string
	PriceMax string
}

// DefaultQuestions returns the built-in question texts.
func DefaultQuestions() Questions {
	return Questions{
		Category: "What type of product are you looking for? (e.g., pants, shoes, dress)",
		Color:    "Do you have a preferred color?",
		Size:     "What size do you need? (e.g., S, M, L)",
		PriceMax: "What is your maximum price?",
	}
}

// Planner is stateless apart from its configured question texts; planning is
// deterministic in its inputs.
type Planner struct {
	questions Questions
}

func New(questions Questions) *Planner {
	defaults := DefaultQuestions()
	if questions.Category == "" {
		questions.Category = defaults.Category
	}
	if questions.Color == "" {
		questions.Color = defaults.Color
	}
	if questions.Size == "" {
		questions.Size = defaults.Size
	}
	if questions.PriceMax == "" {
		questions.PriceMax = defaults.PriceMax
	}
	return &Planner{questions: questions}
}

// Plan applies the decision rules in order; the first matching rule wins:
//
//  1. category unknown and the match set varies on Category -> ask category
//  2. color unknown and the match set varies on Color -> ask color
//  3. size unknown and the match set varies on Size -> ask size
//  4. price ceiling unknown -> ask price (price is a universal filter, never
//     gated by catalog facets)
//  5. otherwise present the products, or report no match
//
// An empty match set overrides asking in a vacuum: the decision becomes
// NoMatch carrying whichever question rules 1-4 would have asked next.
func (p *Planner) Plan(it intent.Intent, attrs catalog.AttributeSet, products []models.Product) Decision {
	question := p.nextQuestion(it, attrs)

	if len(products) == 0 {
		return Decision{Kind: KindNoMatch, Question: question}
	}

	if question != "" {
		return Decision{Kind: KindAskQuestion, Question: question}
	}

	return Decision{Kind: KindPresentResults, Products: products}
}

func (p *Planner) nextQuestion(it intent.Intent, attrs catalog.AttributeSet) string {
	switch {
	case !it.HasCategory() && attrs.Has(catalog.AttrCategory):
		return p.questions.Category
	case !it.HasColor() && attrs.Has(catalog.AttrColor):
		return p.questions.Color
	case !it.HasSize() && attrs.Has(catalog.AttrSize):
		return p.questions.Size
	case !it.HasPriceMax():
		return p.questions.PriceMax
	}
	return ""
}

// Package card_review implements review sessions: selecting the cards that
// are due and recording ratings through the scheduler in internal/domain/srs.
package card_review

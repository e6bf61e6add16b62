// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor holds the edit-mode draft of an opened question. Edits
// change only the draft; the original is kept so Cancel can restore it
// and Save can send just the changed fields.
package editor

import (
	"fmt"

	"prepdeck/internal/models"
)

// Editable field names.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldSolution    = "solution"
	FieldTopic       = "topic"
)

// Draft is an in-progress edit of a question.
type Draft struct {
	Original models.QuestionDetails `json:"original"`
	Current  models.QuestionDetails `json:"current"`
}

// Begin starts a draft as a copy of q.
func Begin(q models.QuestionDetails) Draft {
	return Draft{Original: q, Current: q}
}

// Set changes one text field of the draft.
func (d *Draft) Set(field, value string) error {
	switch field {
	case FieldTitle:
		d.Current.Title = value
	case FieldDescription:
		d.Current.Description = value
	case FieldSolution:
		d.Current.Solution = value
	default:
		return fmt.Errorf("editor: unknown field %q", field)
	}
	return nil
}

// SetTopic moves the draft to the topic behind a dropdown option.
func (d *Draft) SetTopic(opt models.Option) {
	d.Current.Topic = models.QuestionTopic{
		Name:     opt.Label,
		Slug:     opt.Value,
		Category: d.Current.Topic.Category,
	}
}

// Dirty reports whether title, description or solution differ from the
// original. Saving is only offered for a dirty draft.
func (d Draft) Dirty() bool {
	return d.Current.Title != d.Original.Title ||
		d.Current.Description != d.Original.Description ||
		d.Current.Solution != d.Original.Solution
}

// Cancel discards the edits and returns the original question.
func (d Draft) Cancel() models.QuestionDetails {
	return d.Original
}

// Patch returns an update carrying only the fields that changed, including
// fields cleared to "".
func (d Draft) Patch() models.QuestionPatch {
	var p models.QuestionPatch
	if d.Current.Title != d.Original.Title {
		p.Title = &d.Current.Title
	}
	if d.Current.Description != d.Original.Description {
		p.Description = &d.Current.Description
	}
	if d.Current.Solution != d.Original.Solution {
		p.Solution = &d.Current.Solution
	}
	if d.Current.Topic.Slug != d.Original.Topic.Slug {
		p.Topic = &d.Current.Topic.Slug
	}
	return p
}

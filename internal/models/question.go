// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// QuestionType distinguishes coding exercises from theory questions.
type QuestionType string

const (
	QuestionCoding QuestionType = "CODING"
	QuestionTheory QuestionType = "THEORY"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	return t == QuestionCoding || t == QuestionTheory
}

// Question is the list form returned by /question/all.
type Question struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	YoutubeLink *string      `json:"youtubeLink"`
	WebsiteLink *string      `json:"websiteLink"`
	Verified    bool         `json:"verified"`
	Type        QuestionType `json:"type"`
	Slug        string       `json:"slug"`
}

// GetSlug implements Slugged.
func (q Question) GetSlug() string { return q.Slug }

// Author is the createdBy reference on a question.
type Author struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// QuestionTopic is the topic reference embedded in question details.
type QuestionTopic struct {
	ID       string      `json:"_id"`
	Name     string      `json:"name"`
	Slug     string      `json:"slug"`
	Verified bool        `json:"verified"`
	Category CategoryRef `json:"category"`
}

// QuestionDetails is the full form returned by /question/details/:slug.
type QuestionDetails struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Solution    string        `json:"solution"`
	YoutubeLink *string       `json:"youtubeLink"`
	WebsiteLink *string       `json:"websiteLink"`
	Slug        string        `json:"slug"`
	CreatedBy   Author        `json:"createdBy"`
	Verified    bool          `json:"verified"`
	Type        QuestionType  `json:"type"`
	Topic       QuestionTopic `json:"topic"`
	CanModify   bool          `json:"canModify"`
}

// GetSlug implements Slugged.
func (q QuestionDetails) GetSlug() string { return q.Slug }

// QuestionInput is the body sent when creating a question.
type QuestionInput struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Solution    string       `json:"solution,omitempty"`
	YoutubeLink string       `json:"youtubeLink,omitempty"`
	WebsiteLink string       `json:"websiteLink,omitempty"`
	Type        QuestionType `json:"type,omitempty"`
	Topic       string       `json:"topic,omitempty"`
}

// QuestionPatch is the body sent when updating a question. Nil fields are
// left unchanged; a non-nil empty string clears the field.
type QuestionPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Solution    *string `json:"solution,omitempty"`
	Topic       *string `json:"topic,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p QuestionPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Solution == nil && p.Topic == nil
}

// learning.go
//
// Document database setup, seed, and analytics kit for the learning platform schemas
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of lp-docdb.
// lp-docdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// lp-docdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with lp-docdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status vocabulary. Fixed set, created once at setup, never updated.
const (
	StatusAvailable  = "available"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// StatusNames lists the canonical status vocabulary in seed order.
var StatusNames = []string{StatusAvailable, StatusInProgress, StatusCompleted}

// Status is a referenced enumeration document
type Status struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name" validate:"required,oneof=available in_progress completed"`
}

// Person represents a learner identity, keyed by unique email
type Person struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email" validate:"required,email"`
	PasswordHash string             `bson:"password_hash" json:"-" validate:"required"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
}

// Module is the top of the catalog tree
type Module struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name" validate:"required,max=50"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
}

// Lesson belongs to a Module
type Lesson struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ModuleID    primitive.ObjectID `bson:"module_id" json:"module_id" validate:"required"`
	Name        string             `bson:"name" json:"name" validate:"required,max=60"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Resources   []LessonResource   `bson:"resources,omitempty" json:"resources,omitempty"`
}

// LessonResource is an embedded supporting material reference
type LessonResource struct {
	Title string `bson:"title" json:"title" validate:"required"`
	URL   string `bson:"url" json:"url" validate:"required,httpurl"`
}

// Step belongs to a Lesson
type Step struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LessonID   primitive.ObjectID `bson:"lesson_id" json:"lesson_id" validate:"required"`
	Name       string             `bson:"name" json:"name" validate:"required,max=60"`
	URL        string             `bson:"url,omitempty" json:"url,omitempty" validate:"omitempty,httpurl"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Tags       []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	OrderIndex int                `bson:"order_index,omitempty" json:"order_index,omitempty" validate:"gte=0"`
}

// PersonModuleProgress is the current status of a person on a module.
// At most one document exists per (person_id, module_id); enforced by a unique index.
type PersonModuleProgress struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PersonID  primitive.ObjectID `bson:"person_id" json:"person_id" validate:"required"`
	ModuleID  primitive.ObjectID `bson:"module_id" json:"module_id" validate:"required"`
	StatusID  primitive.ObjectID `bson:"status_id" json:"status_id" validate:"required"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// PersonLessonProgress is the current status of a person on a lesson
type PersonLessonProgress struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PersonID  primitive.ObjectID `bson:"person_id" json:"person_id" validate:"required"`
	LessonID  primitive.ObjectID `bson:"lesson_id" json:"lesson_id" validate:"required"`
	StatusID  primitive.ObjectID `bson:"status_id" json:"status_id" validate:"required"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// PersonStepProgress is the current status of a person on a step. This is the
// finest-grained fact table and the source of both analytics pipelines.
type PersonStepProgress struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PersonID  primitive.ObjectID `bson:"person_id" json:"person_id" validate:"required"`
	StepID    primitive.ObjectID `bson:"step_id" json:"step_id" validate:"required"`
	StatusID  primitive.ObjectID `bson:"status_id" json:"status_id" validate:"required"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the collection name for Status
func (Status) CollectionName() string { return "status" }

// CollectionName returns the collection name for Person
func (Person) CollectionName() string { return "person" }

// CollectionName returns the collection name for Module
func (Module) CollectionName() string { return "module" }

// CollectionName returns the collection name for Lesson
func (Lesson) CollectionName() string { return "lesson" }

// CollectionName returns the collection name for Step
func (Step) CollectionName() string { return "step" }

// CollectionName returns the collection name for PersonModuleProgress
func (PersonModuleProgress) CollectionName() string { return "person_module_progress" }

// CollectionName returns the collection name for PersonLessonProgress
func (PersonLessonProgress) CollectionName() string { return "person_lesson_progress" }

// CollectionName returns the collection name for PersonStepProgress
func (PersonStepProgress) CollectionName() string { return "person_step_progress" }

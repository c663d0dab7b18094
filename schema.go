// Data directory layout.
//
// A Schema says which file holds which category and which record class
// the category contains. It is plain configuration handed to NewDatabase
// and LoadDatabase; nothing in the package consults a global table.
package rvdata

import "slices"

// Category names one of the id-indexed record collections.
type Category string

// Categories of the VX Ace database, in file order.
const (
	Actors       Category = "actors"
	Classes      Category = "classes"
	Skills       Category = "skills"
	Items        Category = "items"
	Weapons      Category = "weapons"
	Armors       Category = "armors"
	Enemies      Category = "enemies"
	Troops       Category = "troops"
	States       Category = "states"
	Animations   Category = "animations"
	Tilesets     Category = "tilesets"
	CommonEvents Category = "common_events"
)

// Extension shared by every VX Ace data file.
const Extension = ".rvdata2"

// ClassSystem is the class of the single non-indexed System record.
const ClassSystem = "RPG::System"

// DataDir is the project subdirectory holding every data file.
const DataDir = "Data"

// Layout binds a category to its file and record class. File has no
// extension.
type Layout struct {
	Category Category
	File     string
	Class    string
}

// Schema describes a Data directory.
type Schema struct {
	Extension   string
	Collections []Layout
	System      Layout // Category is empty
	Scripts     string // file name without extension
}

// DefaultSchema returns the RPG Maker VX Ace layout. Each call returns a
// fresh copy.
func DefaultSchema() *Schema {
	return &Schema{
		Extension: Extension,
		Collections: []Layout{
			{Actors, "Actors", "RPG::Actor"},
			{Classes, "Classes", "RPG::Class"},
			{Skills, "Skills", "RPG::Skill"},
			{Items, "Items", "RPG::Item"},
			{Weapons, "Weapons", "RPG::Weapon"},
			{Armors, "Armors", "RPG::Armor"},
			{Enemies, "Enemies", "RPG::Enemy"},
			{Troops, "Troops", "RPG::Troop"},
			{States, "States", "RPG::State"},
			{Animations, "Animations", "RPG::Animation"},
			{Tilesets, "Tilesets", "RPG::Tileset"},
			{CommonEvents, "CommonEvents", "RPG::CommonEvent"},
		},
		System:  Layout{File: "System", Class: ClassSystem},
		Scripts: "Scripts",
	}
}

// FileName appends the schema's extension to base.
func (s *Schema) FileName(base string) string {
	return base + s.Extension
}

// Layout returns the entry for a category.
func (s *Schema) Layout(c Category) (Layout, bool) {
	i := slices.IndexFunc(s.Collections, func(l Layout) bool { return l.Category == c })
	if i < 0 {
		return Layout{}, false
	}
	return s.Collections[i], true
}

func (s *Schema) clone() *Schema {
	c := *s
	c.Collections = slices.Clone(s.Collections)
	return &c
}

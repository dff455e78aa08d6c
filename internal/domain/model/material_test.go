package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaterialType(t *testing.T) {
	typ, ok := ParseMaterialType("PDF")
	assert.True(t, ok)
	assert.Equal(t, MaterialTypePDF, typ)

	typ, ok = ParseMaterialType(" ebook ")
	assert.True(t, ok)
	assert.Equal(t, MaterialTypeEbook, typ)

	_, ok = ParseMaterialType("spreadsheet")
	assert.False(t, ok)
}

func TestCreateMaterialRequest_Validate(t *testing.T) {
	req := CreateMaterialRequest{
		CourseID: "course-1",
		Title:    "Week 1 Slides",
		FilePath: "materials/course-1/week1.pdf",
	}
	require.NoError(t, req.Validate())
	// Empty type defaults to other.
	assert.Equal(t, MaterialTypeOther, req.Type)

	missingCourse := CreateMaterialRequest{Title: "x", FilePath: "y"}
	assert.EqualError(t, missingCourse.Validate(), "course_id is required")

	missingPath := CreateMaterialRequest{CourseID: "c", Title: "x"}
	assert.EqualError(t, missingPath.Validate(), "file_path is required")

	negative := int64(-1)
	badSize := CreateMaterialRequest{CourseID: "c", Title: "x", FilePath: "y", FileSize: &negative}
	assert.EqualError(t, badSize.Validate(), "file_size cannot be negative")
}

func TestUpdateMaterialRequest_Validate(t *testing.T) {
	empty := UpdateMaterialRequest{}
	assert.EqualError(t, empty.Validate(), "at least one field must be updated")

	typ := MaterialType("Video")
	req := UpdateMaterialRequest{Type: &typ}
	require.NoError(t, req.Validate())
	assert.Equal(t, MaterialTypeVideo, *req.Type)
}

package validation

import (
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	Quantity int    `json:"quantity" validate:"min=1"`
	Status   string `json:"status" validate:"omitempty,oneof=working faulty"`
}

type order struct {
	Name  string `json:"name" validate:"required,max=5"`
	Items []item `json:"items" validate:"required,min=1,dive"`
}

func TestStructKeysByJSONPath(t *testing.T) {
	errs := Struct(order{
		Name:  "too long",
		Items: []item{{Quantity: 1}, {Quantity: 0, Status: "lost"}},
	})

	assert.Equal(t, []string{"The name field may not be greater than 5."}, errs["name"])
	assert.Equal(t, []string{"The quantity field must be at least 1."}, errs["items[1].quantity"])
	assert.Contains(t, errs, "items[1].status")
	assert.NotContains(t, errs, "items[0].quantity")
}

func TestStructValid(t *testing.T) {
	assert.Nil(t, Struct(order{Name: "ok", Items: []item{{Quantity: 2}}}))
}

func TestStructRequired(t *testing.T) {
	errs := Struct(order{})
	assert.Equal(t, []string{"The name field is required."}, errs["name"])
	assert.Equal(t, []string{"The items field is required."}, errs["items"])
}

func TestValidateImportFile(t *testing.T) {
	assert.ErrorIs(t, ValidateImportFile(nil), ErrFileRequired)
	assert.NoError(t, ValidateImportFile(&multipart.FileHeader{Filename: "assets.XLSX", Size: 1024}))
	assert.ErrorIs(t, ValidateImportFile(&multipart.FileHeader{Filename: "assets.pdf", Size: 1024}), ErrImportType)
	assert.ErrorIs(t, ValidateImportFile(&multipart.FileHeader{Filename: "assets.csv", Size: MaxFileSize + 1}), ErrFileSize)
	assert.ErrorIs(t, ValidateImage(&multipart.FileHeader{Filename: "photo.gif", Size: 10}), ErrFileType)
}

type colours struct{}

func (colours) Values(domain string) []string {
	if domain == "colour" {
		return []string{"red", "green"}
	}
	return nil
}

func (c colours) Match(domain, value string) (string, bool) {
	for _, v := range c.Values(domain) {
		if strings.EqualFold(v, strings.TrimSpace(value)) {
			return v, true
		}
	}
	return "", false
}

type paint struct {
	Colour string `json:"colour" validate:"required,enum=colour"`
	Trim   string `json:"trim" validate:"omitempty,enum=colour"`
}

func TestEnumTag(t *testing.T) {
	RegisterEnums(colours{})

	assert.Nil(t, Struct(paint{Colour: " RED "}))

	errs := Struct(paint{Colour: "blue", Trim: "Green"})
	assert.Equal(t, []string{"The selected colour is invalid. Must be one of: red, green."}, errs["colour"])
	assert.NotContains(t, errs, "trim")
}

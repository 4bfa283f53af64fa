package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zedtax/invoice-validator/internal/types"
)

func TestSummarizeEmptyLog(t *testing.T) {
	for _, issues := range [][]types.Issue{nil, {}} {
		summary := Summarize(issues)

		assert.Equal(t, 0, summary.Total)
		assert.Equal(t, 0, summary.Errors)
		assert.Equal(t, 0, summary.AutoFixed)
		assert.Equal(t, 0.0, summary.AutoFixRate, "no division by zero on an empty log")
		assert.Empty(t, summary.ByCategory)
	}
}

func TestSummarizeCounts(t *testing.T) {
	issues := []types.Issue{
		{Severity: types.SeverityError, Category: types.CategoryMandatory},
		{Severity: types.SeverityError, Category: types.CategoryDuplicate},
		{Severity: types.SeverityWarning, Category: types.CategoryAmount, AutoFixed: true},
		{Severity: types.SeverityWarning, Category: types.CategoryAmount, AutoFixed: true},
		{Severity: types.SeverityInfo, Category: types.CategoryCurrency, AutoFixed: true},
	}

	summary := Summarize(issues)

	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 2, summary.Errors)
	assert.Equal(t, 2, summary.Warnings)
	assert.Equal(t, 1, summary.Infos)
	assert.Equal(t, 3, summary.AutoFixed)
	assert.Equal(t, 2, summary.ManualReview)
	assert.Equal(t, 2, summary.ByCategory[types.CategoryAmount])
	assert.InDelta(t, 60.0, summary.AutoFixRate, 0.001)
}

func TestRender(t *testing.T) {
	result := &types.Result{
		IsValid: false,
		Issues: []types.Issue{
			{
				Severity: types.SeverityError,
				Field:    "record 1: TPIN",
				Message:  "mandatory field TPIN is missing or empty",
				Category: types.CategoryMandatory,
			},
		},
	}

	text := Render(result, "invoice.csv", "csv", "run-1")

	assert.Contains(t, text, "invoice.csv")
	assert.Contains(t, text, "Valid:     false")
	assert.Contains(t, text, "1 total")
	assert.Contains(t, text, "mandatory field TPIN")
}

func TestRenderCleanFile(t *testing.T) {
	result := &types.Result{IsValid: true, Issues: []types.Issue{}}

	text := Render(result, "ok.json", "json", "run-2")
	assert.True(t, strings.Contains(text, "No findings"))
}

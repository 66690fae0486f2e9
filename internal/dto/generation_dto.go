package dto

import "copyflow-be/pkg/gateway"

type GenerateCopyRequest struct {
	Briefing string   `json:"briefing" validate:"required"`
	FileName string   `json:"file_name"`
	Keywords []string `json:"keywords"`
}

// GenerateCopyResponse answers both copy routes: the multipart one reads
// output, the JSON one reads copy.
type GenerateCopyResponse struct {
	Output   string `json:"output"`
	Copy     string `json:"copy"`
	Source   string `json:"source"`
	Fallback bool   `json:"fallback"`
}

type GenerateDesignRequest struct {
	Copy     string   `json:"copy" form:"copy" validate:"required"`
	Template string   `json:"template" form:"template" validate:"omitempty,oneof=modern classic minimal"`
	Language string   `json:"language" form:"language"`
	Keywords []string `json:"keywords" form:"keywords"`
}

type GenerateDesignResponse struct {
	Html         string                 `json:"html"`
	Output       string                 `json:"output"`
	DesignedCopy string                 `json:"designed_copy"`
	Language     string                 `json:"language"`
	Metrics      *gateway.DesignMetrics `json:"metrics,omitempty"`
	Source       string                 `json:"source"`
	Fallback     bool                   `json:"fallback"`
}

type CompareFilesRequest struct {
	File1 gateway.Document `json:"file1"`
	File2 gateway.Document `json:"file2"`
}

type CompareFilesResponse struct {
	Similarity    int    `json:"similarity"`
	ContentMatch  int    `json:"contentMatch"`
	Structure     int    `json:"structure"`
	Compatibility int    `json:"compatibility"`
	Source        string `json:"source"`
	Fallback      bool   `json:"fallback"`
}

type CompareTextRequest struct {
	Text1          string   `form:"text1" json:"text1" validate:"required"`
	Text2          string   `form:"text2" json:"text2" validate:"required"`
	ComparisonType string   `form:"comparison_type" json:"comparison_type" validate:"omitempty,oneof=copy_design semantic brief_copy"`
	Keywords       []string `form:"keywords" json:"keywords"`
}

type CompareTextResponse struct {
	Result   map[string]any `json:"result"`
	Source   string         `json:"source"`
	Fallback bool           `json:"fallback"`
}

type GenerateFromComparisonRequest struct {
	File1 gateway.Document `json:"file1"`
	File2 gateway.Document `json:"file2"`
}

type GenerateFromComparisonResponse struct {
	Content  string `json:"content"`
	Source   string `json:"source"`
	Fallback bool   `json:"fallback"`
}

type ExtractResponse struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Format  string `json:"format"`
	Content string `json:"content"`
	Pages   int    `json:"pages,omitempty"`
}

type DownloadCopyRequest struct {
	Copy string `json:"copy" form:"copy" validate:"required"`
}

type DownloadDesignRequest struct {
	Title string `json:"title" form:"title"`
	Html  string `json:"html" form:"html" validate:"required"`
}

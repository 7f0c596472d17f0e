package producer

import "google.golang.org/genai"

const (
	bpmMin      = 60
	bpmMax      = 200
	barsMax     = 128
	stepsMax    = 2048
	reverbDecay = 10
)

// SongDocumentSchema returns the JSON schema used to force structured
// output from the producer models. The shape mirrors song.Document; the
// engine still validates the result, the schema just makes well-formed
// output overwhelmingly likely.
func SongDocumentSchema() *OutputSchema {
	trackSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern":    map[string]any{"type": "array", "items": map[string]any{"type": "integer", "minimum": 0}},
			"notes":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"velocity":   map[string]any{"type": "array", "items": map[string]any{"type": "number", "minimum": 0, "maximum": 1}},
			"ghostNotes": map[string]any{"type": "array", "items": map[string]any{"type": "integer", "minimum": 0}},
			"muted":      map[string]any{"type": "boolean"},
			"volume":     map[string]any{"type": "number"},
		},
		"required":             []string{"pattern", "muted", "volume"},
		"additionalProperties": false,
	}

	sectionSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"bars": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "integer", "minimum": 1, "maximum": barsMax},
				"minItems": 2,
				"maxItems": 2,
			},
			"activeTracks": map[string]any{
				"anyOf": []any{
					map[string]any{"type": "string", "enum": []string{"all"}},
					map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
		},
		"required":             []string{"bars", "activeTracks"},
		"additionalProperties": false,
	}

	return &OutputSchema{
		Name:        "song_document",
		Description: "A complete multi-section drum machine song document",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"metadata": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":   map[string]any{"type": "string"},
						"artist":  map[string]any{"type": "string"},
						"version": map[string]any{"type": "string"},
						"created": map[string]any{"type": "string"},
						"bpm":     map[string]any{"type": "integer", "minimum": bpmMin, "maximum": bpmMax},
						"bars":    map[string]any{"type": "integer", "minimum": 1, "maximum": barsMax},
						"steps":   map[string]any{"type": "integer", "minimum": 16, "maximum": stepsMax},
						"format":  map[string]any{"type": "string"},
					},
					"required":             []string{"title", "artist", "version", "created", "bpm", "bars", "steps", "format"},
					"additionalProperties": false,
				},
				"effects": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"filter": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"cutoff":    map[string]any{"type": "number", "minimum": 0, "maximum": 1},
								"type":      map[string]any{"type": "string"},
								"startFreq": map[string]any{"type": "number"},
								"endFreq":   map[string]any{"type": "number"},
							},
							"required":             []string{"cutoff", "type", "startFreq", "endFreq"},
							"additionalProperties": false,
						},
						"reverb": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"wet":      map[string]any{"type": "number", "minimum": 0, "maximum": 1},
								"roomSize": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
								"decay":    map[string]any{"type": "number", "minimum": 0, "maximum": reverbDecay},
							},
							"required":             []string{"wet", "roomSize", "decay"},
							"additionalProperties": false,
						},
					},
					"required":             []string{"filter", "reverb"},
					"additionalProperties": false,
				},
				"tracks": map[string]any{
					"type":                 "object",
					"additionalProperties": trackSchema,
				},
				"arrangement": map[string]any{
					"type":                 "object",
					"additionalProperties": sectionSchema,
				},
			},
			"required":             []string{"metadata", "effects", "tracks", "arrangement"},
			"additionalProperties": false,
		},
	}
}

// songDocumentGeminiSchema mirrors SongDocumentSchema in genai's schema
// type. Gemini's schema language has no additionalProperties, so the
// track/section maps are left open and the validator catches strays.
func songDocumentGeminiSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"metadata": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":   {Type: genai.TypeString},
					"artist":  {Type: genai.TypeString},
					"version": {Type: genai.TypeString},
					"created": {Type: genai.TypeString},
					"bpm":     {Type: genai.TypeInteger},
					"bars":    {Type: genai.TypeInteger},
					"steps":   {Type: genai.TypeInteger},
					"format":  {Type: genai.TypeString},
				},
				Required: []string{"title", "artist", "version", "created", "bpm", "bars", "steps", "format"},
			},
			"effects": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"filter": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"cutoff":    {Type: genai.TypeNumber},
							"type":      {Type: genai.TypeString},
							"startFreq": {Type: genai.TypeNumber},
							"endFreq":   {Type: genai.TypeNumber},
						},
						Required: []string{"cutoff", "type", "startFreq", "endFreq"},
					},
					"reverb": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"wet":      {Type: genai.TypeNumber},
							"roomSize": {Type: genai.TypeNumber},
							"decay":    {Type: genai.TypeNumber},
						},
						Required: []string{"wet", "roomSize", "decay"},
					},
				},
				Required: []string{"filter", "reverb"},
			},
			"tracks":      {Type: genai.TypeObject},
			"arrangement": {Type: genai.TypeObject},
		},
		Required: []string{"metadata", "effects", "tracks", "arrangement"},
	}
}

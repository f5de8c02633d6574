package memory

import "github.com/SscSPs/fortune_desk/internal/core/domain"

// Request type IDs shared with migrations/000002_seed_request_types.up.sql.
const (
	NineStarKiTypeID       = "6f1d2f4e-2b1a-4c55-9a43-0c6f1e0a0001"
	TarotTypeID            = "6f1d2f4e-2b1a-4c55-9a43-0c6f1e0a0002"
	WesternAstrologyTypeID = "6f1d2f4e-2b1a-4c55-9a43-0c6f1e0a0003"
	FourPillarsTypeID      = "6f1d2f4e-2b1a-4c55-9a43-0c6f1e0a0004"
)

var genderField = domain.FieldSpec{
	Type:  domain.FieldSelect,
	Label: "Gender",
	Options: []domain.FieldOption{
		{Value: "male", Label: "Male"},
		{Value: "female", Label: "Female"},
		{Value: "other", Label: "Other"},
	},
}

// DefaultRequestTypes is the catalogue used when running without Postgres.
func DefaultRequestTypes() []domain.RequestType {
	return []domain.RequestType{
		{
			TypeID:          NineStarKiTypeID,
			Name:            "Nine Star Ki",
			Description:     "Eastern reading of life cycles derived from the birth date.",
			RequiredCredits: 1,
			IsActive:        true,
			InputSchema: domain.InputSchema{
				Required: []string{"name", "birthdate", "gender", "consultation"},
				Optional: []string{"birthtime", "birthplace"},
				Fields: map[string]domain.FieldSpec{
					"name":         {Type: domain.FieldText, Label: "Name", MaxLength: 100},
					"birthdate":    {Type: domain.FieldDate, Label: "Birth date"},
					"birthtime":    {Type: domain.FieldTime, Label: "Birth time"},
					"birthplace":   {Type: domain.FieldText, Label: "Birthplace"},
					"gender":       genderField,
					"consultation": {Type: domain.FieldTextarea, Label: "Consultation", MaxLength: 500},
				},
			},
		},
		{
			TypeID:          TarotTypeID,
			Name:            "Tarot",
			Description:     "A spread of the 78 cards answering one concrete question.",
			RequiredCredits: 1,
			IsActive:        true,
			InputSchema: domain.InputSchema{
				Required: []string{"name", "gender", "question_type", "consultation"},
				Optional: []string{"birthdate"},
				Fields: map[string]domain.FieldSpec{
					"name":      {Type: domain.FieldText, Label: "Name", MaxLength: 100},
					"birthdate": {Type: domain.FieldDate, Label: "Birth date"},
					"gender":    genderField,
					"question_type": {
						Type:  domain.FieldSelect,
						Label: "Question category",
						Options: []domain.FieldOption{
							{Value: "love", Label: "Love"},
							{Value: "work", Label: "Work"},
							{Value: "money", Label: "Money"},
							{Value: "health", Label: "Health"},
							{Value: "general", Label: "General"},
						},
					},
					"consultation": {Type: domain.FieldTextarea, Label: "Question", MaxLength: 500},
				},
			},
		},
		{
			TypeID:          WesternAstrologyTypeID,
			Name:            "Western Astrology",
			Description:     "Natal chart reading with personality analysis and outlook.",
			RequiredCredits: 2,
			IsActive:        true,
			InputSchema: domain.InputSchema{
				Required: []string{"name", "birthdate", "birthtime", "birthplace", "gender", "consultation"},
				Fields: map[string]domain.FieldSpec{
					"name":         {Type: domain.FieldText, Label: "Name", MaxLength: 100},
					"birthdate":    {Type: domain.FieldDate, Label: "Birth date"},
					"birthtime":    {Type: domain.FieldTime, Label: "Birth time"},
					"birthplace":   {Type: domain.FieldLocation, Label: "Birthplace"},
					"gender":       genderField,
					"consultation": {Type: domain.FieldTextarea, Label: "Consultation", MaxLength: 500},
				},
			},
		},
		{
			TypeID:          FourPillarsTypeID,
			Name:            "Four Pillars of Destiny",
			Description:     "Detailed destiny analysis from the hour, day, month and year of birth.",
			RequiredCredits: 2,
			IsActive:        true,
			InputSchema: domain.InputSchema{
				Required: []string{"name", "birthdate", "birthtime", "gender", "consultation"},
				Optional: []string{"birthplace"},
				Fields: map[string]domain.FieldSpec{
					"name":         {Type: domain.FieldText, Label: "Name", MaxLength: 100},
					"birthdate":    {Type: domain.FieldDate, Label: "Birth date"},
					"birthtime":    {Type: domain.FieldTime, Label: "Birth time"},
					"birthplace":   {Type: domain.FieldText, Label: "Birthplace"},
					"gender":       genderField,
					"consultation": {Type: domain.FieldTextarea, Label: "Consultation", MaxLength: 500},
				},
			},
		},
	}
}

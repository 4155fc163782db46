package fieldapi

import "github.com/JonMunkholm/halofields/internal/customfield"

// fieldUsage is the usage scope sent with every field; 1 = ticket fields.
const fieldUsage = 1

// FieldPayload is the JSON body of a field-creation request.
type FieldPayload struct {
	Usage               int     `json:"usage"`
	Name                string  `json:"name"`
	Label               string  `json:"label"`
	Type                uint8   `json:"type"`
	InputType           *uint8  `json:"inputtype,omitempty"`
	NewValues           *string `json:"new_values,omitempty"`
	Searchable          bool    `json:"searchable"`
	UserSearchable      bool    `json:"user_searchable"`
	CalendarSearchable  bool    `json:"calendar_searchable"`
	CopyToChild         bool    `json:"copytochild"`
	CopyToChildOnUpdate bool    `json:"copytochildonupdate"`
}

// NewFieldPayload maps a custom field to its wire representation.
func NewFieldPayload(cf customfield.CustomField) FieldPayload {
	p := FieldPayload{
		Usage:               fieldUsage,
		Name:                cf.Name().String(),
		Label:               cf.Label().String(),
		Type:                cf.Type().TypeID(),
		Searchable:          true,
		UserSearchable:      true,
		CalendarSearchable:  true,
		CopyToChild:         true,
		CopyToChildOnUpdate: true,
	}

	if id, ok := customfield.InputTypeID(cf.Type()); ok {
		p.InputType = &id
	}
	if values, ok := customfield.JoinedOptions(cf.Type()); ok {
		p.NewValues = &values
	}

	return p
}

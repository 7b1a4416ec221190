package dto

type EntityOptionResponse struct {
	Id             string `json:"id"`
	DisplayName    string `json:"display_name"`
	DocumentBacked bool   `json:"document_backed"`
}

type CustomerDetailResponse struct {
	Id             string `json:"id"`
	Name           string `json:"name"`
	Segment        string `json:"segment,omitempty"`
	DocumentBacked bool   `json:"document_backed"`
}

type SetFilterRequest struct {
	Filter string `json:"filter"`
}

type SelectEntityRequest struct {
	EntityId string `json:"entity_id" validate:"required"`
}

type SelectionResponse struct {
	Kind        string `json:"kind"`
	EntityId    string `json:"entity_id,omitempty"`
	DisplayText string `json:"display_text"`
}

type CatalogStateResponse struct {
	Options   []EntityOptionResponse `json:"options"`
	Selection SelectionResponse      `json:"selection"`
}

package models

// InboundRequest moves a scanned box into a station.
type InboundRequest struct {
	Barcode          string `json:"barcode" binding:"required"`
	OperatorID       string `json:"operator_id" binding:"required"`
	CurrentStationID string `json:"current_station_id" binding:"required"`
}

// OutboundRequest moves a box out of a station and mints its replacement
// barcode. Container, box sequence, status and quantity are optional
// overrides; empty values carry over from the scanned barcode.
type OutboundRequest struct {
	Barcode          string `json:"barcode" binding:"required"`
	OperatorID       string `json:"operator_id" binding:"required"`
	CurrentStationID string `json:"current_station_id" binding:"required"`
	Container        string `json:"container"`
	BoxSeq           string `json:"box_seq"`
	Status           string `json:"status"`
	Qty              string `json:"qty"`
}

// FirstStationRequest mints the very first barcode of an order from manually
// entered data; series and model codes are validated against the vocabulary.
type FirstStationRequest struct {
	Order            string `json:"order" binding:"required"`
	OperatorID       string `json:"operator_id" binding:"required"`
	CurrentStationID string `json:"current_station_id" binding:"required"`
	SeriesCode       string `json:"series_code" binding:"required"`
	ModelCode        string `json:"model_code" binding:"required"`
	Container        string `json:"container" binding:"required"`
	BoxSeq           string `json:"box_seq" binding:"required"`
	Status           string `json:"status" binding:"required"`
	Qty              string `json:"qty" binding:"required"`
}

// TraceRequest asks for the trace report of the order embedded in a barcode.
type TraceRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

// InboundResult echoes the accepted movement.
type InboundResult struct {
	Order          string `json:"order"`
	SKU            string `json:"sku"`
	CurrentStation string `json:"current_station"`
	PrevStation    string `json:"prev_station"`
}

// OutboundResult carries the freshly minted barcode and routing hint.
type OutboundResult struct {
	NewBarcode     string `json:"new_barcode"`
	Order          string `json:"order"`
	CurrentStation string `json:"current_station"`
	NextStation    string `json:"next_station"`
	QRCodeSVG      string `json:"qr_code_svg,omitempty"`
}

// FirstStationResult carries the first barcode of a new order.
type FirstStationResult struct {
	Barcode        string `json:"barcode"`
	Order          string `json:"order"`
	SKU            string `json:"sku"`
	CurrentStation string `json:"current_station"`
	NextStation    string `json:"next_station"`
	QRCodeSVG      string `json:"qr_code_svg,omitempty"`
}

// VocabOption is one selectable code in the configuration endpoints.
type VocabOption struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// ContainerOption is a container code with its unit capacity.
type ContainerOption struct {
	Code     string `json:"code"`
	Capacity string `json:"capacity"`
}

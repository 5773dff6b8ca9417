package tryon

// TryOnRequest is the inbound body of POST /api/v1/try-on. Image carries
// the human photo payload (data URL or remote URL), GarmentURL points at
// the product shot, Category is an optional hint.
type TryOnRequest struct {
	Image      string `json:"image" validate:"required"`
	GarmentURL string `json:"garmentUrl" validate:"required"`
	Category   string `json:"category"`
}

// TryOnResponse carries the normalized result image URL.
type TryOnResponse struct {
	Result string `json:"result"`
}

package handler

// Handlers groups every HTTP handler of the catalog API.
type Handlers struct {
	Health      *HealthHandler
	VirtualItem *VirtualItemHandler
	Purchase    *PurchaseHandler
	Thumbnail   *ThumbnailHandler
	Import      *ImportHandler
	WebSocket   *WebSocketHandler
}

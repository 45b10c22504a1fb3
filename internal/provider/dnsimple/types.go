package dnsimple

type zoneRecord struct {
	ID      int64  `json:"id"`
	ZoneID  string `json:"zone_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Type    string `json:"type"`
}

type pagination struct {
	CurrentPage  int `json:"current_page"`
	PerPage      int `json:"per_page"`
	TotalEntries int `json:"total_entries"`
	TotalPages   int `json:"total_pages"`
}

type listRecordsResponse struct {
	Data       []zoneRecord `json:"data"`
	Pagination pagination   `json:"pagination"`
}

type recordAttributes struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     int    `json:"ttl,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

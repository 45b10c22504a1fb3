package balena

type deviceList struct {
	D []device `json:"d"`
}

type device struct {
	UUID      string  `json:"uuid"`
	IPAddress *string `json:"ip_address"`
}

type whoami struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

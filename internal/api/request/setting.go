package request

type SetEODTokenRequest struct {
	Token string `json:"token"`
}

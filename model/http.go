package model

type ConvertResponse struct {
	Id     string `json:"id"`
	Format string `json:"format"`
	Kern   string `json:"kern"`
	Lines  int    `json:"lines"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

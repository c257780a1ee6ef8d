package friend

type Friend struct {
	Id          int
	Username    string
	DisplayName string
}

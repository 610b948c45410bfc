package server

const (
	Green = "\033[32m"
	Blue  = "\033[34m"
	Gray  = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m" // Reset to default color
)

var methodColors = map[string]string{
	"GET":     Green,
	"POST":    Blue,
	"OPTIONS": Gray,
}

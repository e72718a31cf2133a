package version

import "fmt"

// Заполняются на этапе сборки через -ldflags:
//
//	-X github.com/vladislavdragonenkov/mustore/internal/version.version=v1.2.0
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// BuildInfo описывает сборку текущего бинаря.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info возвращает данные о сборке.
func Info() BuildInfo {
	return BuildInfo{Version: version, Commit: commit, Date: date}
}

// String - однострочное представление для логов и health-ответов.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}

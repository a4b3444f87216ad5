package version

import "fmt"

// Заполняются через -ldflags "-X .../internal/version.version=v1.2.3".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Build описывает сборку, отдаётся в /version и health-ответах.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Current возвращает сведения о текущей сборке.
func Current() Build {
	return Build{Version: version, Commit: commit, Date: date}
}

// GetVersion возвращает только тег релиза.
func GetVersion() string { return version }

// UserAgent: значение заголовка User-Agent для исходящих запросов.
func UserAgent() string {
	return "order-gateway/" + version
}

func (b Build) String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", b.Version, b.Commit, b.Date)
}

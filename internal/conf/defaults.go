package conf

import (
	"github.com/spf13/viper"

	"github.com/tphakala/birdstrike/internal/dataset"
)

// setDefaultConfig sets the value of every known key, which also makes each key
// visible to environment lookup.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("input.dateformats", dataset.DefaultDateLayouts)

	v.SetDefault("output.dateformat", dataset.DateLayout)
	v.SetDefault("output.xlsx.enabled", false)
	v.SetDefault("output.xlsx.path", "merged.xlsx")
	v.SetDefault("output.report.enabled", false)
	v.SetDefault("output.report.path", "report.yaml")
	v.SetDefault("output.metrics.enabled", false)
	v.SetDefault("output.metrics.path", "birdstrike.prom")
	v.SetDefault("output.database.enabled", false)
	v.SetDefault("output.database.type", "sqlite")
	v.SetDefault("output.database.path", "birdstrike.db")
	v.SetDefault("output.database.dsn", "")

	v.SetDefault("location.enabled", false)
	v.SetDefault("location.latitude", 0.000)
	v.SetDefault("location.longitude", 0.000)
	v.SetDefault("location.timezone", "Local")

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
}

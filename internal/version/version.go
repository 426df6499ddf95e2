// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Aggregation daemon: SQLite snapshot cache, WebSocket republishing
// 0.2.0 - Free-return and lunar-landing trajectory diagrams, mission router
// 0.1.0 - Initial release: live orbit view, feed clients, headless modes

// Package domain holds the pure rules for the accusation protocol: case and
// game records, accusation verification against the case commitment, the
// score formula, and player stats. Nothing here touches storage; the service
// layer orchestrates persistence around these decisions.
package domain

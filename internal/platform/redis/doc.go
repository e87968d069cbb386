// Package redis publishes domain events to a Redis stream so that other
// processes (analytics, notifications) can consume review activity.
package redis

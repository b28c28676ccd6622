// Package store provides storage and pub/sub functionality for chart state.
//
// This package is internal to syncboard and keeps the latest visible window
// and visibility of every chart served by the standalone dashboard. It
// implements a publish-subscribe pattern so connected dashboard clients see
// range changes as soon as a broadcast moves a chart.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [ChartState]: Storage representation of a chart's viewport
//
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers will miss updates rather than block a broadcast cycle).
package store

//go:build pagerdebug

package pager

const debugAssertions = true

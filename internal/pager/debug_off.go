//go:build !pagerdebug

package pager

const debugAssertions = false

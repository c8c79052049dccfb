package logship

import (
	"sort"
	"strings"
)

// Stack identifies which half of the application produced an event.
type Stack string

const (
	StackBackend  Stack = "backend"
	StackFrontend Stack = "frontend"
)

// Level is the severity ladder understood by the collector.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Package names accepted by the collector. Call sites should use these
// constants so typos surface at compile time rather than as rejected events.
const (
	PackageCache      = "cache"
	PackageController = "controller"
	PackageCron       = "cron"
	PackageDomain     = "domain"
	PackageHandler    = "handler"
	PackageRepository = "repository"
	PackageRoute      = "route"
	PackageService    = "service"

	PackageAuth       = "auth"
	PackageConfig     = "config"
	PackageMiddleware = "middleware"
)

var levels = map[Level]struct{}{
	LevelDebug: {},
	LevelInfo:  {},
	LevelWarn:  {},
	LevelError: {},
	LevelFatal: {},
}

// backendPackages are accepted only with StackBackend.
var backendPackages = map[string]struct{}{
	PackageCache:      {},
	PackageController: {},
	PackageCron:       {},
	PackageDomain:     {},
	PackageHandler:    {},
	PackageRepository: {},
	PackageRoute:      {},
	PackageService:    {},
}

// sharedPackages are accepted with either stack.
var sharedPackages = map[string]struct{}{
	PackageAuth:       {},
	PackageConfig:     {},
	PackageMiddleware: {},
}

// AllowedPackages returns the sorted package names accepted for the stack.
// An unknown stack yields nil.
func AllowedPackages(stack Stack) []string {
	names := make([]string, 0, len(backendPackages)+len(sharedPackages))
	switch normalizeStack(stack) {
	case StackBackend:
		for name := range backendPackages {
			names = append(names, name)
		}
	case StackFrontend:
	default:
		return nil
	}
	for name := range sharedPackages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeStack(stack Stack) Stack {
	return Stack(strings.ToLower(strings.TrimSpace(string(stack))))
}

func normalizeLevel(level Level) Level {
	return Level(strings.ToLower(strings.TrimSpace(string(level))))
}

func normalizePackage(pkg string) string {
	return strings.ToLower(strings.TrimSpace(pkg))
}

func validStack(stack Stack) bool {
	return stack == StackBackend || stack == StackFrontend
}

func validLevel(level Level) bool {
	_, ok := levels[level]
	return ok
}

// validPackage expects a normalized stack and package name.
func validPackage(stack Stack, pkg string) bool {
	if _, ok := sharedPackages[pkg]; ok {
		return true
	}
	if stack == StackBackend {
		_, ok := backendPackages[pkg]
		return ok
	}
	return false
}

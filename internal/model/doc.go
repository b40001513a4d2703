package model

// Package model defines the data passed between the command surface and the core
// services: download requests and progress, notification requests and the payload
// string that correlates an application tag with a delivered notification.

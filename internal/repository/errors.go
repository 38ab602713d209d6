package repository

import "errors"

var (
	// ErrNotFound возвращается командами UPDATE/DELETE, не затронувшими ни одной строки
	ErrNotFound = errors.New("record not found")
	// ErrSlotTaken у слота уже есть активная запись
	ErrSlotTaken = errors.New("slot already has an active appointment")
	// ErrEmailTaken учётная запись с таким email уже существует
	ErrEmailTaken = errors.New("email already registered")
)

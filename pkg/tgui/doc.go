// Package tgui provides small helpers for Telegram ParseMode="HTML" text:
// escaping, emphasis and links, plus rune-safe truncation.
package tgui

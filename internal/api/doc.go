// Package api exposes the notification pipeline over HTTP: health checks, a
// manual sweep trigger for operators, and the relay endpoint that receives
// webhook notifications and forwards them to Telegram.
package api

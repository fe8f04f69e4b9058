// Package smtp содержит транспорт для отправки писем через SMTP.
package smtp

import "io"

// Client минимальный набор команд SMTP, нужный для отправки письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает сессии к почтовому серверу.
type TransportInterface interface {
	Connect() (Client, error)
	Sender() string
}

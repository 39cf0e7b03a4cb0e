// portfolioclient — консольный клиент бэкенда портфолио: вход, проекты,
// отзывы, сообщения, уведомления и админ-панель из терминала, плюс
// локальный стаб бэкенда для разработки фронтенда.
package main

import (
	"log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("Ошибка: %v", err)
	}
}

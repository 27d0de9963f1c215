package model

import "errors"

var (
	// ErrInvalidField indica um campo de estimativa desconhecido
	ErrInvalidField = errors.New("campo de estimativa inválido")

	// ErrExcelGeneration indica falha ao montar a planilha de exportação
	ErrExcelGeneration = errors.New("falha ao gerar planilha de exportação")
)

// Package document localiza os arrays de interesse dentro de um JSON de
// forma frouxa: o snapshot do fornecedor muda de layout entre exportações e o
// motor não pode depender de um nome de propriedade fixo.
package document

import "sort"

// Listas de candidatos por tipo de registro, em ordem de prioridade.
// Reutilizadas quando pedidos/produtos vêm na raiz em vez de embutidos
// por cliente.
var (
	CandidatosClientes = []string{"clientes", "customers", "data", "lista_clientes"}
	CandidatosPedidos  = []string{"pedidos", "orders"}
	CandidatosProdutos = []string{"produtos", "produtos_comprados", "products"}
)

// Locate devolve o primeiro array encontrado na raiz do documento:
//  1. primeira propriedade candidata cujo valor é array;
//  2. senão, a primeira propriedade de qualquer nome cujo valor é array,
//     varrendo os nomes em ordem lexicográfica para que o mesmo documento
//     resolva sempre para o mesmo array;
//  3. senão, a própria raiz se ela for um array;
//  4. senão, nil.
func Locate(raiz any, candidatos []string) []any {
	if obj, ok := raiz.(map[string]any); ok {
		for _, nome := range candidatos {
			if arr, ok := obj[nome].([]any); ok {
				return arr
			}
		}
		nomes := make([]string, 0, len(obj))
		for nome := range obj {
			nomes = append(nomes, nome)
		}
		sort.Strings(nomes)
		for _, nome := range nomes {
			if arr, ok := obj[nome].([]any); ok {
				return arr
			}
		}
		return nil
	}
	if arr, ok := raiz.([]any); ok {
		return arr
	}
	return nil
}

// LocateNamed é como Locate, mas sem o fallback de varredura: só devolve o
// array se estiver sob um dos nomes candidatos. Usado para pedidos e produtos
// na raiz, onde pegar "qualquer array" confundiria com o array de clientes.
func LocateNamed(raiz any, candidatos []string) []any {
	obj, ok := raiz.(map[string]any)
	if !ok {
		return nil
	}
	for _, nome := range candidatos {
		if arr, ok := obj[nome].([]any); ok {
			return arr
		}
	}
	return nil
}

package providers

import "scholar-sync/models"

// Provider ist das Interface, das jeder Quellen-Client (Crossref, DBLP, ORCID)
// implementieren muss.
type Provider interface {
	// Search führt eine Suche für einen gegebenen Term durch und gibt eine Liste
	// von standardisierten Paper-Modellen zurück. Transport- und Parse-Fehler
	// degradieren zu einer leeren Liste; sie werden geloggt, nicht propagiert.
	Search(term string) ([]*models.Paper, error)

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "crossref").
	Name() string
}

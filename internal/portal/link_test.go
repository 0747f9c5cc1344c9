package portal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetailURL(t *testing.T) {
	caseID := "NT30460004811420250013409"
	producer := "B12345678"
	representative := "X7654321Z"

	url := DetailURL(caseID, producer, representative)

	require.True(t, strings.HasPrefix(url, "https://sede.miteco.gob.es/portal/site/seMITECO/area_personal?"))
	require.True(t, strings.HasSuffix(url, "numPagSolSelec=10#no-back-button"))

	// The case id fills two slots, the producer NIF two, the
	// representative NIF one.
	require.Contains(t, url, "idExpediente="+caseID)
	require.Contains(t, url, "regInicial="+caseID)
	require.Equal(t, 2, strings.Count(url, caseID))

	require.Contains(t, url, "idDocIdentificativo="+producer)
	require.Contains(t, url, "nifTitular="+producer)
	require.Equal(t, 2, strings.Count(url, producer))

	require.Contains(t, url, "idDocRepresentante="+representative)
	require.Equal(t, 1, strings.Count(url, representative))

	for _, fixed := range []string{
		"btnDetalleProc=btnDetalleProc",
		"pagina=1",
		"idProcedimiento=736",
		"idSubOrganoResp=11",
		"idEstadoSeleccionado=-1",
		"idTipoProcSeleccionado=EN+REPRESENTACION+(REA)",
	} {
		require.Contains(t, url, fixed)
	}
}

func TestDetailURLDeterministic(t *testing.T) {
	a := DetailURL("r", "p", "x")
	b := DetailURL("r", "p", "x")
	require.Equal(t, a, b)
}

func TestDetailURLEmptyValues(t *testing.T) {
	// Empty ids are legal here; validation is the portal's problem.
	url := DetailURL("", "", "")
	require.Contains(t, url, "idExpediente=&")
	require.Contains(t, url, "idDocRepresentante=&")
	require.True(t, strings.HasSuffix(url, "numPagSolSelec=10#no-back-button"))
}

func TestHrefHasSuffix(t *testing.T) {
	require.True(t, hrefHasSuffix("https://sede.miteco.gob.es/docs/justificante.pdf", ".pdf"))
	require.True(t, hrefHasSuffix("/docs/Justificante.PDF?id=3#top", ".pdf"))
	require.False(t, hrefHasSuffix("https://sede.miteco.gob.es/docs/listado.html", ".pdf"))
	require.False(t, hrefHasSuffix("https://sede.miteco.gob.es/docs/?format=pdf", ".pdf"))
}

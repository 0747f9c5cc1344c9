// Package portal encodes the MITECO sede electrónica: the detail-page URL
// schema, the authentication click sequence and the page interactions the
// download session needs.
package portal

import "fmt"

const detailBaseURL = "https://sede.miteco.gob.es/portal/site/seMITECO/area_personal"

// DetailURL builds the detail-page URL for one regage case. The case id fills
// both idExpediente and regInicial, the producer NIF fills both
// idDocIdentificativo and nifTitular. The ids are opaque: empty strings are
// legal here and simply produce a URL the portal will reject.
func DetailURL(caseID, producerNIF, representativeNIF string) string {
	return detailBaseURL +
		"?btnDetalleProc=btnDetalleProc" +
		"&pagina=1" +
		fmt.Sprintf("&idExpediente=%s", caseID) +
		"&idProcedimiento=736" +
		"&idSubOrganoResp=11" +
		fmt.Sprintf("&idDocIdentificativo=%s", producerNIF) +
		fmt.Sprintf("&idDocRepresentante=%s", representativeNIF) +
		"&idEstadoSeleccionado=-1" +
		"&idTipoProcSeleccionado=EN+REPRESENTACION+(REA)" +
		fmt.Sprintf("&regInicial=%s", caseID) +
		fmt.Sprintf("&nifTitular=%s", producerNIF) +
		"&numPagSolSelec=10#no-back-button"
}

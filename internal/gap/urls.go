package gap

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultManifestURLs returns the shipped survey of published manifests from
// libraries, archives and museums.
func DefaultManifestURLs() []string {
	return []string{
		"https://iiif.archivelab.org/iiif/gri_33125008447371/manifest.json",
		"https://purl.stanford.edu/hs631zg4177/iiif/manifest",
		"https://figgy.princeton.edu/concern/scanned_maps/a3a43786-f2d0-4715-8588-b01a9df63519/manifest",
		"https://digicoll.lib.berkeley.edu/nanna/proxy/iiif/manifest/154193/",
		"https://cdn1.historyit.com/iiif/5f34291499c4a6.60628694-110549/manifest",
		"https://www.loc.gov/item/2005625339/manifest.json",
		"https://cudl.lib.cam.ac.uk//iiif/PH-PEMBROKE-SPEC-STOR",
		"https://www.davidrumsey.com/luna/servlet/iiif/m/RUMSEY~8~1~375532~90141858/manifest",
		"https://gallica.bnf.fr/iiif/ark:/12148/btv1b53171153s/manifest.json",
		"https://purl.stanford.edu/wk210cf6868/iiif/manifest",
		"https://iiif.lib.harvard.edu/manifests/ids:7115721",
		"https://iiif.library.ucla.edu/ark%3A%2F21198%2Fzz00096fzh/manifest",
		"https://collections.library.yale.edu/manifests/15483342",
		"https://ark.digitalcommonwealth.org/ark:/50959/wd3761121/manifest",
		"https://media.getty.edu/iiif/manifest/46eb79a4-b25a-4453-997f-d7f5a03e1de2",
		"https://repository.library.brown.edu/iiif/presentation/bdr:42007/manifest.json",
		"https://iiif.bodleian.ox.ac.uk/iiif/manifest/e1004f2e-cc99-4341-8980-9f967da2ba16.json",
		"https://www.digitalcollections.manchester.ac.uk/iiif/PR-JAPANESE-00048",
		"https://digitalcollections.lancaster.ac.uk/iiif/MS-DAVY-11401",
		"https://iiif.harvardartmuseums.org/manifests/object/58651",
		"https://data.artmuseum.princeton.edu/iiif/objects/141145",
		"https://acdc.amherst.edu//do/beafcb99-0d94-40a6-b861-ac4022efa2d4/metadata/iiifmanifest3cws/default.jsonld",
		"https://digitalcollections.iu.edu/concern/images/7d27b5132/manifest",
		"https://api.dc.library.northwestern.edu/api/v2/works/f986dbcd-86c6-4785-af31-e0b4c6f480c0?as=iiif",
		"https://library.osu.edu/dc/concern/generic_works/g733cq458/manifest",
		"https://ids.si.edu/ids/manifest/NMAH-JN2019-01828-000001",
		"https://quod.lib.umich.edu/cgi/i/image/api/manifest/bp1ic:CN01",
		"https://iiif-manifest.library.nd.edu/manifest/002209657",
		"https://digi.vatlib.it/iiif/MSS_Borg.Carte.naut.V/manifest.json",
		"https://hdl.huntington.org/iiif/2/p16003coll4:5679/manifest.json",
		"https://collections.lib.uwm.edu/iiif/2/agdm:864/manifest.json",
		"https://iiif.quartexcollections.com/pepperdine/iiif/b709510c-1e3c-4b1b-abe8-4fc9917e07a9/manifest",
		"https://digitalcollections.lib.washington.edu/iiif/2/skinner:907/manifest.json",
		"https://cdm15808.contentdm.oclc.org/iiif/2/archives:668/manifest.json",
		"https://d.lib.ncsu.edu/collections/catalog/mc00240-001-ff0093-001-001_0010/manifest",
		"https://iiif.quartexcollections.com/rice/iiif/bf437e36-33ab-4962-b372-59d6214e087f/manifest",
		"https://jdm.library.jhu.edu/iiif-pres-dlmm/pizan/Arsenal3356/manifest",
		"https://repository.duke.edu/iiif/ark%3A%2F87924%2Fr4jd50j64/manifest",
		"https://digital.library.manoa.hawaii.edu/iiif/23762/manifest",
		"https://iiif.quartexcollections.com/portland/iiif/e4b78bc1-fbb0-4539-8bc4-ae4d1ac1c8d3/manifest",
		"https://iiif.library.ubc.ca/presentation/cdm.rainbow.1-0357825/manifest",
		"https://digital.library.villanova.edu/Item/vudl:98712/Manifest",
		"https://curate.library.emory.edu/iiif//310jsxkss8-cor/manifest",
		"https://cdm16022.contentdm.oclc.org/iiif/nico:1676/manifest.json",
		"https://explore.digitalsd.org/iiif/2/carterjohnson:1561/manifest.json",
		"https://iiif.library.leeds.ac.uk/presentation/cc/dpgpb6r9",
		"https://contentdm.lib.byu.edu/iiif/2/p15999coll31:40558/manifest.json",
	}
}

// LoadURLs reads one manifest URL per line. Blank lines and lines starting
// with # are skipped.
func LoadURLs(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}

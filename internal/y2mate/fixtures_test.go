package y2mate

const downloaderFragment = `
<div class="thumbnail cover"><img src="https://i.ytimg.com/vi/abc123/0.jpg"></div>
<div class="caption text-left"><b> Never Gonna Give You Up </b></div>
<div class="tab-content">
  <div class="tab-pane fade active in" id="mp4">
    <table class="table table-bordered">
      <thead><tr><th>Resolution</th><th>FileSize</th><th>Download</th></tr></thead>
      <tbody>
        <tr><td>1080p (.mp4) <span class="label">HD</span></td><td>120.5 MB</td>
          <td class="txt-center"><a href="#" rel="nofollow" data-ftype="mp4" data-fquality="1080">Download</a></td></tr>
        <tr><td>720p (.mp4)</td><td>60.1 MB</td>
          <td class="txt-center"><a href="#" data-ftype="mp4" data-fquality="720p">Download</a></td></tr>
        <tr><td>360p (.mp4)</td><td>20.3 MB</td>
          <td class="txt-center"><a href="#" data-ftype="mp4" data-fquality="360">Download</a></td></tr>
        <tr><td>144p (.mp4)</td><td></td>
          <td class="txt-center"><a href="#" data-ftype="mp4" data-fquality="144">Download</a></td></tr>
        <tr><td colspan="3">Show all</td></tr>
      </tbody>
    </table>
  </div>
  <div class="tab-pane fade" id="mp3">
    <table class="table">
      <thead><tr><th>Bitrate</th><th>FileSize</th><th>Download</th></tr></thead>
      <tbody>
        <tr><td>MP3 - 128kbps</td><td>3.4 MB</td>
          <td><a href="#" data-ftype="mp3" data-fquality="128">Download</a></td></tr>
        <tr><td colspan="3"></td></tr>
      </tbody>
    </table>
  </div>
  <div class="tab-pane fade" id="audio">
    <table class="table">
      <thead><tr><th>Bitrate</th><th>FileSize</th><th>Download</th></tr></thead>
      <tbody>
        <tr><td>.m4a - 128kbps</td><td>3.3 MB</td>
          <td><button class="btn">Play</button><a href="#" data-ftype="m4a" data-fquality="128">Download</a></td></tr>
        <tr><td>.mp3 - 128kbps</td><td>3.4 MB</td>
          <td><a href="#" data-ftype="mp3" data-fquality="128">Download</a></td></tr>
        <tr><td colspan="3"></td></tr>
      </tbody>
    </table>
  </div>
</div>
<script type="text/javascript">var k_data_vid = "abc123"; var k__id = "5f1e7a0b9c"; var k_data_vtitle = "x";</script>
`

const converterFragment = `
<div class="caption text-left"><b>Converter Song</b></div>
<div class="form-group">
  <ul class="dropdown-menu">
    <li><a href="#" onclick="changeMp3Type(320, 'mp3')">320 kbps</a></li>
    <li><a href="#" onclick="changeMp3Type(128, 'mp3')">128 kbps</a></li>
    <li><a href="#" onclick="changeMp3Type(192, 'mp3')">192 kbps</a></li>
  </ul>
</div>
<script>var k__id = "conv-token";</script>
`

const convertFragment = `
<div class="text-center">
  <a href="https://files.example.net/dl/abc123.mp4?token=x" rel="nofollow" class="btn btn-success">Download (60.1 MB)</a>
</div>
`
